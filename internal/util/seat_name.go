package util

import (
	"fmt"
	"holdem-server/internal/rng"

	"github.com/google/uuid"
)

var adjectives = []string{
	"Fast", "Slow", "Quick", "Sly", "Lucky", "Patient", "Stone", "Loose", "Tight", "Cold", "Steady",
	"Red", "Blue", "Green", "Silent", "Wild", "Fuzzy", "Smiling", "Tall", "Grand", "Bold", "Prime",
	"Sharp", "Growling", "Rolling", "Bluffing", "Folding", "Calling", "Raising", "Charging", "Dealing",
}

var animals = []string{
	"Dog", "Cat", "Mouse", "Alligator", "Shark", "Hippo", "Giraffe", "Lion", "Tiger",
	"Bear", "Otter", "Dolphin", "Porcupine", "Hedgehog", "Snake", "Lizard", "Chipmunk",
	"Okapi", "Eagle", "Mandrill", "Wolf", "Fox", "Armadillo", "Rhino", "Panda",
}

// RandomSeatName returns a display name for a seat that joined without one
func RandomSeatName(gen rng.Generator) string {
	if gen == nil {
		gen = rng.Crypto{}
	}

	return fmt.Sprintf("%s %s", adjectives[gen.Intn(len(adjectives))], animals[gen.Intn(len(animals))])
}

// RandomIdentity generates a random identity suitable for testing
func RandomIdentity() string {
	return "player-" + uuid.New().String()
}
