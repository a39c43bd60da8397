package game

// Difficulty selects one of the fixed jump-map tables.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// NormalizeDifficulty clamps unrecognized input to medium.
func NormalizeDifficulty(value string) Difficulty {
	switch Difficulty(value) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(value)
	default:
		return DifficultyMedium
	}
}

// jumpPairs lists [from, to] cell pairs. Ladders move forward
// (to > from), snakes move backward.
var jumpPairs = map[Difficulty][][2]int{
	DifficultyEasy: {
		{3, 21}, {8, 30}, {28, 55}, {36, 63}, {51, 72}, {71, 92},
		{25, 5}, {49, 29}, {67, 47}, {88, 66}, {96, 76},
	},
	DifficultyMedium: {
		{4, 14}, {9, 31}, {21, 42}, {28, 50}, {40, 61}, {63, 84},
		{19, 7}, {35, 16}, {48, 27}, {66, 45}, {79, 58}, {93, 73}, {98, 79},
	},
	DifficultyHard: {
		{2, 12}, {11, 26}, {22, 40}, {45, 64}, {70, 88},
		{17, 4}, {31, 10}, {43, 21}, {57, 36}, {69, 49}, {78, 54}, {87, 60}, {95, 72}, {99, 80},
	},
}

// JumpMap materializes the table for a difficulty as a lookup by
// landing cell.
func JumpMap(difficulty Difficulty) map[int]int {
	pairs := jumpPairs[NormalizeDifficulty(string(difficulty))]
	table := make(map[int]int, len(pairs))
	for _, pair := range pairs {
		table[pair[0]] = pair[1]
	}
	return table
}
