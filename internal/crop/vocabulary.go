// Package crop recognises crop names in free-text farming questions.
//
// The vocabulary is a closed, ordered set. Order is significant: when a
// question mentions several crops, the one listed first here wins.
package crop

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Name is a canonical crop name drawn from the vocabulary.
type Name string

// Crops known to the extractor, in vocabulary order.
const (
	Maize       Name = "maize"
	Wheat       Name = "wheat"
	Rice        Name = "rice"
	Soybean     Name = "soybean"
	Potato      Name = "potato"
	Tomato      Name = "tomato"
	Onion       Name = "onion"
	Banana      Name = "banana"
	Mango       Name = "mango"
	Sugarcane   Name = "sugarcane"
	Cotton      Name = "cotton"
	Barley      Name = "barley"
	Sorghum     Name = "sorghum"
	Peas        Name = "peas"
	Beans       Name = "beans"
	Lentils     Name = "lentils"
	Chickpeas   Name = "chickpeas"
	Groundnut   Name = "groundnut"
	Sunflower   Name = "sunflower"
	Mustard     Name = "mustard"
	Cabbage     Name = "cabbage"
	Cauliflower Name = "cauliflower"
	Broccoli    Name = "broccoli"
	Carrot      Name = "carrot"
	Spinach     Name = "spinach"
	Lettuce     Name = "lettuce"
	Cucumber    Name = "cucumber"
	Eggplant    Name = "eggplant"
	Pepper      Name = "pepper"
	Okra        Name = "okra"
	BitterGourd Name = "bitter gourd"
	Pumpkin     Name = "pumpkin"
	Watermelon  Name = "watermelon"
	Melon       Name = "melon"
	Grapes      Name = "grapes"
	Apple       Name = "apple"
	Orange      Name = "orange"
	Lemon       Name = "lemon"
	Lime        Name = "lime"
	Papaya      Name = "papaya"
	Pineapple   Name = "pineapple"
	Guava       Name = "guava"
	Pomegranate Name = "pomegranate"
	Cashew      Name = "cashew"
	Almond      Name = "almond"
	Walnut      Name = "walnut"
	Coffee      Name = "coffee"
	Tea         Name = "tea"
	Cocoa       Name = "cocoa"
	Rubber      Name = "rubber"
	Jute        Name = "jute"
	Hemp        Name = "hemp"
	Flax        Name = "flax"
	Sisal       Name = "sisal"
)

var vocabulary = []Name{
	Maize, Wheat, Rice, Soybean, Potato, Tomato, Onion, Banana, Mango, Sugarcane,
	Cotton, Barley, Sorghum, Peas, Beans, Lentils, Chickpeas, Groundnut, Sunflower, Mustard,
	Cabbage, Cauliflower, Broccoli, Carrot, Spinach, Lettuce, Cucumber, Eggplant, Pepper, Okra,
	BitterGourd, Pumpkin, Watermelon, Melon, Grapes, Apple, Orange, Lemon, Lime, Papaya,
	Pineapple, Guava, Pomegranate, Cashew, Almond, Walnut, Coffee, Tea, Cocoa, Rubber,
	Jute, Hemp, Flax, Sisal,
}

var index = func() map[Name]int {
	m := make(map[Name]int, len(vocabulary))
	for i, n := range vocabulary {
		m[n] = i
	}
	return m
}()

// Vocabulary returns a copy of the ordered crop vocabulary.
func Vocabulary() []Name {
	out := make([]Name, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Parse returns the vocabulary entry for s, ignoring case and surrounding space.
func Parse(s string) (Name, bool) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	_, ok := index[n]
	return n, ok
}

// Valid reports whether n is a vocabulary entry.
func (n Name) Valid() bool {
	_, ok := index[n]
	return ok
}

// Rank is the position of n in the vocabulary, or -1.
func (n Name) Rank() int {
	if i, ok := index[n]; ok {
		return i
	}
	return -1
}

// Display returns the name with its first letter upper-cased ("bitter gourd" -> "Bitter gourd").
func (n Name) Display() string {
	s := string(n)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func (n Name) String() string { return string(n) }
