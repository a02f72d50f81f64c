package lexical

import "github.com/garyellow/agri-advisor-go/internal/intent"

// Phrases maps an intent to example utterances that make up its documents
// in the index.
type Phrases map[intent.Label][]string

// DefaultPhrases returns the built-in example corpus. Crop-specific
// examples come from the farming training set; the rest cover intents the
// training set never had.
func DefaultPhrases() Phrases {
	out := make(Phrases, len(builtin))
	for label, phrases := range builtin {
		out[label] = append([]string(nil), phrases...)
	}
	return out
}

var builtin = Phrases{
	intent.AskCropInfo: {
		"Tell me about maize cultivation",
		"What do I need to know about growing wheat",
		"Information on rice farming",
		"How to grow tomatoes",
		"Details about potato farming",
		"Banana cultivation guide",
		"Mango farming tips",
		"Sugarcane growing information",
		"Cotton farming basics",
		"How do you grow soybean",
		"General information about lentil crop",
		"Crop details for chickpeas",
		"What are barley cultivation methods",
		"Groundnut growing information",
		"Coffee plant characteristics",
		"Tea plant cultivation",
		"Sunflower growing guide",
		"Rapeseed farming information",
		"Mustard seed cultivation",
		"Provide crop information",
	},
	intent.AskFertilizer: {
		"What fertilizer should I use for maize",
		"Fertilizer recommendations for wheat",
		"Which fertilizer for rice fields",
		"Fertilizer for tomato plants",
		"What to use for potato fertilizer",
		"Fertilizer advice for soybeans",
		"Best fertilizer for cotton",
		"Fertilizer for sugarcane",
		"Best NPK ratio for maize",
		"Urea application for wheat",
		"Phosphorus fertilizer for rice",
		"Potassium for vegetables",
		"Organic fertilizer options for tomatoes",
		"Compost application rates",
		"Micronutrient fertilizers",
		"Calcium deficiency treatment",
		"Magnesium fertilizer needs",
		"Boron application timing",
		"How to apply foliar fertilizers",
		"Describe fertilizer requirements",
	},
	intent.AskPest: {
		"How to control pests in maize",
		"Pest management for wheat",
		"Rice pest control methods",
		"Pests affecting tomatoes",
		"Potato pest problems",
		"Soybean pest control",
		"Cotton pest management",
		"Sugarcane pest control",
		"Controlling aphids on crops",
		"Dealing with armyworms",
		"Prevention of fall armyworm",
		"Managing spider mites",
		"Whitefly control strategies",
		"Thrips management methods",
		"Scale insect control",
		"Nematode pest management",
		"Caterpillar identification",
		"Biological pest control options",
		"Pesticide safety measures",
		"Explain pest management",
	},
	intent.AskIrrigation: {
		"Watering schedule for maize",
		"Irrigation for wheat crops",
		"Rice field irrigation",
		"Tomato plant watering",
		"Potato irrigation needs",
		"Soybean watering requirements",
		"Cotton irrigation methods",
		"Sugarcane irrigation",
		"How often to water vegetables",
		"Drip irrigation for tomatoes",
		"Flood irrigation for rice",
		"Micro-irrigation systems",
		"Water requirements for wheat",
		"Sprinkler system setup",
		"Soil moisture monitoring",
		"Irrigation scheduling tips",
		"Water conservation methods",
		"Canal irrigation management",
		"Efficient water use techniques",
		"Tell me about irrigation",
	},
	intent.AskPlanting: {
		"When to plant maize",
		"Planting time for wheat",
		"Rice planting season",
		"Tomato planting guide",
		"Potato planting tips",
		"Soybean planting dates",
		"Cotton planting information",
		"Sugarcane planting methods",
		"Best planting season for vegetables",
		"Seed spacing for maize",
		"How deep to plant seeds",
		"Planting density for rice",
		"Recommended row spacing for wheat",
		"Seed germination requirements",
		"Soil preparation before planting",
		"Nursery establishment guide",
		"Transplanting seedlings correctly",
		"Intercropping planting patterns",
		"Direct seeding vs transplanting",
		"Explain planting procedures",
	},
	intent.AskHarvesting: {
		"When to harvest maize",
		"Wheat harvesting time",
		"Rice harvesting guide",
		"Tomato harvesting tips",
		"Potato harvesting season",
		"Soybean harvesting",
		"Cotton harvesting methods",
		"Sugarcane harvesting",
		"Signs of crop maturity",
		"How to identify ripe tomatoes",
		"Wheat maturity indicators",
		"Rice grain ripeness",
		"When to harvest potatoes",
		"Post-harvest handling of crops",
		"Grain storage after harvest",
		"Fruit preservation techniques",
		"Harvest timing for best quality",
		"Equipment for harvesting grains",
		"Mechanical harvester operation",
	},
	intent.AskDisease: {
		"Maize disease control",
		"Wheat disease management",
		"Rice disease prevention",
		"Tomato diseases and treatment",
		"Potato disease control",
		"Soybean disease management",
		"Cotton disease control",
		"Sugarcane disease prevention",
		"Fungal disease treatment",
		"Bacterial wilt management",
		"Leaf blight control",
		"Root rot prevention",
		"Powdery mildew treatment",
		"Early blight management",
		"Downy mildew control",
		"Leaf spot disease prevention",
		"Damping off disease prevention",
		"Fungicide application timing",
		"Disease-resistant variety selection",
	},
	intent.AskSoil: {
		"How do I test my soil",
		"What is the ideal soil pH",
		"How to improve soil fertility",
		"My soil is too acidic",
		"Soil is alkaline what should I add",
		"How much organic matter should soil have",
		"Adding lime to soil",
		"Clay soil drainage problems",
		"Sandy soil improvement",
		"Soil health tips",
	},
	intent.AskWeather: {
		"What is the weather forecast",
		"Will it rain this week",
		"Heavy rain is expected what should I do",
		"How to protect crops from frost",
		"Heatwave advice for farmers",
		"Drought conditions on my farm",
		"Is it too hot to spray",
		"Monsoon forecast",
		"Temperature dropping tonight",
		"Storm warning for farms",
	},
	intent.AskSeed: {
		"Where can I buy certified seeds",
		"How to check seed quality",
		"Best seed variety to buy",
		"Seed germination percentage test",
		"How to store seeds",
		"Hybrid seeds or local seeds",
		"Seed purity standards",
		"Seed treatment before sowing",
		"Are these seeds genuine",
		"Seed supplier recommendations",
	},
	intent.AskMarket: {
		"What is the market price today",
		"Where can I sell my produce",
		"Current mandi rates",
		"How to get a better price for my crop",
		"Crop prices this season",
		"Reduce post-harvest losses before selling",
		"Value addition for farm produce",
		"Selling directly to buyers",
		"Market demand for vegetables",
		"When is the best time to sell grain",
	},
	intent.AskSubsidy: {
		"Government subsidy for farmers",
		"How to apply for PM-KISAN",
		"Crop insurance scheme",
		"Am I eligible for a farm subsidy",
		"Equipment subsidy application",
		"Loan schemes for farmers",
		"Documents needed for subsidy",
		"Fertilizer subsidy details",
		"Irrigation subsidy scheme",
		"Where is the agriculture office",
	},
	intent.AskEquipment: {
		"Which tractor should I buy",
		"Farm machinery for a small farm",
		"Renting farm equipment",
		"Power tiller or tractor",
		"Best sprayer for my field",
		"Tools for weeding",
		"Seed drill machine",
		"Walking tractor horsepower",
		"Maintaining farm machinery",
		"Cooperative equipment hire",
	},
	intent.Greeting: {
		"Hello",
		"Hi",
		"Hi there",
		"Hey",
		"Namaste",
		"Good morning",
		"Good afternoon",
		"Good evening",
		"Hello, anyone there",
		"Greetings",
	},
	intent.Thanks: {
		"Thank you",
		"Thanks",
		"Thanks a lot",
		"Thank you very much",
		"Many thanks",
		"That was helpful, thanks",
		"Thanks for the advice",
		"Great, thank you",
		"Appreciate it",
		"Thank you so much for your help",
	},
}
