package questiongenerator

// DistributeQuestions splits a total question count evenly across the
// cross-product of the given taxonomy and difficulty levels. Cells are
// produced taxonomy-major, difficulty-minor, and the remainder after even
// division goes to the earliest cells in that order, one extra question each.
//
// Every cell receives at least one question: when total is smaller than the
// number of combinations the distributor over-delivers rather than leaving
// cells empty. Callers that care about exact totals must request at least as
// many questions as there are combinations.
func DistributeQuestions(total int, taxonomyLevels []TaxonomyLevel, difficultyLevels []DifficultyLevel) []GenerationCell {
	combos := len(taxonomyLevels) * len(difficultyLevels)
	if combos == 0 {
		return nil
	}

	base := total / combos
	if base < 1 {
		base = 1
	}
	remainder := total - base*combos

	cells := make([]GenerationCell, 0, combos)
	for _, taxonomy := range taxonomyLevels {
		for _, difficulty := range difficultyLevels {
			count := base
			if remainder > 0 {
				count++
				remainder--
			}
			cells = append(cells, GenerationCell{
				Taxonomy:   taxonomy,
				Difficulty: difficulty,
				Count:      count,
			})
		}
	}
	return cells
}

// TotalCount sums the question counts across a sequence of cells.
func TotalCount(cells []GenerationCell) int {
	total := 0
	for _, cell := range cells {
		total += cell.Count
	}
	return total
}
