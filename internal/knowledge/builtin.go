package knowledge

import (
	"github.com/garyellow/agri-advisor-go/internal/crop"
	"github.com/garyellow/agri-advisor-go/internal/intent"
)

// Fixed replies.
const (
	GreetingText = "Namaste! I'm here to help with farming advice. Ask me about fertilizers, pests, diseases, irrigation, planting, harvesting, or crops."
	ThanksText   = "You're welcome! Hope the advice is helpful. Ask more questions anytime!"
	FallbackText = "I couldn't understand that. Ask me about: fertilizer, pests, diseases, irrigation, planting, harvesting, or specific crops."

	// Used when a crop-independent intent has no entry at all.
	rephraseText = "Please rephrase your question."
	soilText     = "Soil health is critical."
	// Legacy policy text when the intent has no crop to borrow from.
	extensionText = "Please consult local extension services for specific advice."
)

var builtinClarify = map[intent.Label]string{
	intent.AskFertilizer: "Which crop are you asking about? This helps me give specific fertilizer advice.",
	intent.AskPest:       "Which crop has pests? Tell me the crop and I can recommend specific pest control.",
	intent.AskDisease:    "Which crop is affected? Pest management depends on the crop.",
	intent.AskIrrigation: "Which crop needs irrigation? Water requirements vary by crop.",
	intent.AskPlanting:   "Which crop are you planning to plant? Each has different planting dates & methods.",
	intent.AskHarvesting: "Which crop are you harvesting? Harvest time varies significantly by crop.",
	intent.AskCropInfo:   "Which crop would you like to know about? Please mention the crop name.",
}

type cropAdvice struct {
	crop crop.Name
	text string
}

func perCrop(rows ...cropAdvice) Entry {
	m := make(map[crop.Name]string, len(rows))
	order := make([]crop.Name, 0, len(rows))
	for _, r := range rows {
		m[r.crop] = r.text
		order = append(order, r.crop)
	}
	return PerCrop(m, order)
}

func builtinEntries() map[intent.Label]Entry {
	return map[intent.Label]Entry{
		intent.AskFertilizer: perCrop(
			cropAdvice{crop.Maize, "Apply N-P-K 15:15:15 at planting, then side-dress urea (46-0-0) at 6-8 weeks and tasseling stage. Total: ~200 kg/ha."},
			cropAdvice{crop.Wheat, "Use 40-50 kg N, 20 kg P, 15 kg K per hectare. Split nitrogen: 50% at planting, 50% at shooting stage."},
			cropAdvice{crop.Rice, "Apply 60-80 kg N, 40 kg P, 40 kg K per hectare. Use split applications: 25% at tillering, 50% at panicle initiation, 25% at boot stage."},
			cropAdvice{crop.Tomato, "Use 150-200 kg NPK/ha with high K (more than N). Drip application: 2 kg/week after flowering. Include micronutrients (Zn, B)."},
			cropAdvice{crop.Potato, "Apply 40 kg N, 80 kg P, 150 kg K per hectare (potatoes need high K). Use FYM 20 tons/ha + chemical fertilizers."},
			cropAdvice{crop.Soybean, "Soybean fixes nitrogen; apply 60 kg P and 40 kg K per hectare. Avoid excess nitrogen."},
			cropAdvice{crop.Cotton, "Apply 80-100 kg N, 40 kg P, 40 kg K per hectare. Avoid excess nitrogen (causes vegetative growth)."},
			cropAdvice{crop.Sugarcane, "Apply 120 kg N, 60 kg P, 60 kg K per hectare. Add 30 tons FYM/ha."},
			cropAdvice{crop.Onion, "Apply 100 kg N, 50 kg P, 40 kg K per hectare. Avoid chloride-based potassium."},
			cropAdvice{crop.Cabbage, "Apply 80-100 kg N, 60 kg P, 40 kg K per hectare with 15 tons FYM/ha."},
		),
		intent.AskPest: perCrop(
			cropAdvice{crop.Maize, "Armyworm: Spray Bt formulation (1 spray at 3-4 leaf stage). Stem borer: Carbofuran 3% CG at 1.5 kg/ha."},
			cropAdvice{crop.Wheat, "Early sown crops more prone to pests. Aphids: Spray imidacloprid 17.8% (50 ml/acre). Thrips: Triazophos 40% EC."},
			cropAdvice{crop.Rice, "Stem borer: Spray endosulfan 35% EC (2.5L/ha) at boot stage. Leaf folder: Hand collection or Spinosad."},
			cropAdvice{crop.Tomato, "Whiteflies: Yellow sticky traps + insecticidal soap. Fruit worm: Quinalphos 25% EC (2 ml/L water)."},
			cropAdvice{crop.Potato, "Late blight: Mancozeb 75% WP (2.5 kg/ha) every 7-10 days. Aphids: Imidacloprid spray."},
			cropAdvice{crop.Cotton, "Pink bollworm: Install pheromone traps. Spray Bt @ 500-600 ml/ha at flower bud stage."},
			cropAdvice{crop.Cabbage, "Diamondback moth: Spinosad or Bt spray. Cabbage butterfly: Hand-pick eggs/young caterpillars."},
		),
		intent.AskDisease: perCrop(
			cropAdvice{crop.Maize, "Maize rust: Spray sulfur or triadimefon @ 2g/L. Blight: Use disease-resistant varieties."},
			cropAdvice{crop.Wheat, "Leaf rust: Propiconazole 25% EC (0.5 ml/L). Stripe rust: Hexaconazole. Powdery mildew: Sulfur spray."},
			cropAdvice{crop.Rice, "Blast: Tricyclazole @ 1g/L. Sheath blight: Validamycin A @ 1 ml/L or Hexaconazole."},
			cropAdvice{crop.Tomato, "Early blight: Mancozeb @ 2.5 g/L every 7-10 days. Late blight: Metalaxyl+Mancozeb."},
			cropAdvice{crop.Potato, "Late blight: Mancozeb 75% (2.5 kg/ha) every 7 days. Early blight: Carbendazim @ 0.5g/L."},
			cropAdvice{crop.Cabbage, "Black rot: Use disease-free seeds. White rot: Soil treatment with Trichoderma."},
		),
		intent.AskIrrigation: perCrop(
			cropAdvice{crop.Maize, "Total water needed: 450-600 mm. Critical stages: V6 (6 leaves), VT (tasseling), R3 (milk). Irrigate at 75% readily available water."},
			cropAdvice{crop.Wheat, "Total water: 300-450 mm across 3-4 irrigations. First irrigation at CRI (Crown Root Initiation, 20-25 days), then at boot and milking stage."},
			cropAdvice{crop.Rice, "Standing water 5-7 cm. Maintain this throughout season except at harvest. Drain 7-10 days before harvest."},
			cropAdvice{crop.Tomato, "Drip irrigation best (saves 35% water). 400-600 mm total. Frequent but light irrigation. Avoid wetting foliage."},
			cropAdvice{crop.Potato, "600-750 mm total water. Critical: 50-80 days after planting. Irrigate when soil moisture drops to 50%."},
			cropAdvice{crop.Cotton, "600-1000 mm depending on rainfall. Irrigate at flower bud + flowering. Avoid irrigation 30 days before harvest."},
		),
		intent.AskPlanting: perCrop(
			cropAdvice{crop.Maize, "Sow June-July for kharif (monsoon). Seed rate: 20 kg/ha. Spacing: 60 x 25 cm (2 seeds/hill). Soil pH: 6-7.5."},
			cropAdvice{crop.Wheat, "Sow Nov-Dec for rabi. Seed rate: 100-125 kg/ha. In-row spacing: 20-25 cm for line sowing."},
			cropAdvice{crop.Rice, "Sow June-July after soil moisture. Nursery: 4-5 kg/100 sqm. Transplant after 25-35 days. Spacing: 20x15 cm."},
			cropAdvice{crop.Tomato, "Sep-Jan for best quality. Nursery in Aug-Oct. Transplant 35-40 days old seedlings. Spacing: 60x45 cm."},
			cropAdvice{crop.Potato, "Oct-Nov planting. Seed rate: 1.5-2 tons/ha (25g seed tubers). Depth: 5-7 cm. Spacing: 20 x 50 cm."},
			cropAdvice{crop.Cotton, "May-June sowing. Seed rate: 20 kg/ha (short duration) to 25 kg/ha (medium). Spacing: 90 x 60 cm."},
		),
		intent.AskHarvesting: perCrop(
			cropAdvice{crop.Maize, "Cobs turn dark, kernels become dull. Moisture 18-20%. Cut stalks when grain moisture reaches 15-18%. Dry to 12% for storage."},
			cropAdvice{crop.Wheat, "Plant turns golden, grain hard (cannot be dented). Harvest when moisture 10-12%. Use combine harvester for efficiency."},
			cropAdvice{crop.Rice, "Panicles droop, 80% grains hard. Harvest when moisture 15-20% (easier threshing). Thresh within 2 days."},
			cropAdvice{crop.Tomato, "Pick at breaker stage (first color change). Fully red: highly perishable. Store at 10-13°C, 85% RH."},
			cropAdvice{crop.Potato, "75-90 days after planting. Vine dies, tubers mature. Harvest when soil dry. Handle carefully to avoid bruising."},
			cropAdvice{crop.Cotton, "Bolls split, white lint visible, leaves start defoliation. Pick when 75% bolls open. Store in dry place."},
		),
		intent.AskCropInfo: perCrop(
			cropAdvice{crop.Maize, "Maize (corn): Kharif crop, 120-150 days. Needs 500-750 mm water. Uses soils pH 6-7.5. Hybrid varieties give 40-50 qt/ha."},
			cropAdvice{crop.Wheat, "Rabi cereal crop, 120-140 days. Temp: 15-25°C. Better in well-drained soils. Varieties: HD2967, DBW17. Yield: 40-60 qt/ha."},
			cropAdvice{crop.Rice, "Monsoon/kharif crop, 120-150 days. Waterlogged conditions needed. Yield: 50-70 qt/ha."},
			cropAdvice{crop.Tomato, "Solanaceae, 60-80 days to first picking, 120-150 days total cycle. Needs support, high K, warm days."},
			cropAdvice{crop.Potato, "75-90 day cycle. Cool season crop. Uses 20-25 tons compost/ha. High yielder: 250-400 qt/ha."},
			cropAdvice{crop.Cotton, "180-210 day crop. High-value commodity. Needs 40 cm rainfall minimum. Yield: 15-20 qt/ha (seed cotton)."},
		),
		intent.AskSoil:      Default("Ideal soil: pH 6.0-7.5, 2-3% organic matter. Add 15-20 tons compost/ha yearly. Get soil test every 2 years. Add lime if pH <6, sulfur if pH >7.5."),
		intent.AskWeather:   Default("Monitor 7-day forecast. Heavy rain: risk of fungal diseases, reduce irrigation. Heatwave: increase irrigation, apply mulch. Frost: cover young plants."),
		intent.AskSeed:      Default("Buy certified seeds from govt agencies (PKVY, FSI). Check: germination % (minimum 85%), purity (95%), moisture (8%). Store in cool, dry place (<20°C, <50% RH)."),
		intent.AskMarket:    Default("Check mandi prices (AGMARKNET.gov.in). Post-harvest loss: reduce through drying, storage in cool place. Do value addition: bottled juice, dried chips, etc."),
		intent.AskSubsidy:   Default("Contact block/district agriculture office. Many schemes: PM-KISAN (income support), crop insurance, equipment subsidy. Verify eligibility & documentation needed."),
		intent.AskEquipment: Default("Small farms: Manual tools. Medium: Walking tractor (20-25 hp). Large: Tractor + implements. Rent equipment via cooperatives to reduce costs."),
	}
}
