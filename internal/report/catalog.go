package report

// Form catalogs for the report flow. These mirror the options the app always
// offered; free text is still accepted for everything but the species.

// DefaultSpecies is assumed when none is given.
const DefaultSpecies = "Cachorro"

// Species lists the selectable species.
var Species = []string{"Cachorro", "Gato", "Outro"}

var dogBreeds = []string{
	"Sem raça definida", "Golden Retriever", "Labrador", "Bulldog",
	"Pastor Alemão", "Poodle", "Beagle", "Rottweiler", "Yorkshire",
	"Shih Tzu", "Husky Siberiano", "Chihuahua", "Dachshund", "Boxer",
	"Doberman", "Outra",
}

var catBreeds = []string{
	"Sem raça definida", "Persa", "Siamês", "Maine Coon", "Angorá",
	"Ragdoll", "British Shorthair", "Sphynx", "Bengal", "Outra",
}

var otherBreeds = []string{"Sem raça definida", "Outra"}

// Sizes lists the selectable sizes.
var Sizes = []string{"Pequeno", "Médio", "Grande"}

// Colors lists the selectable coat colors.
var Colors = []string{
	"Branco", "Preto", "Marrom", "Cinza", "Dourado", "Tigrado",
	"Bicolor", "Tricolor", "Outra",
}

// Breeds returns the breed options for a species.
func Breeds(species string) []string {
	switch species {
	case "Cachorro":
		return dogBreeds
	case "Gato":
		return catBreeds
	default:
		return otherBreeds
	}
}

// ValidSpecies reports whether the species is one of the selectable options.
func ValidSpecies(species string) bool {
	for _, s := range Species {
		if s == species {
			return true
		}
	}
	return false
}
