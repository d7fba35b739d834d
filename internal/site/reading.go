package site

const wordsPerMinute = 220

// ReadingMinutes estimates how long an article of the given word count
// takes to read, rounding up.
func ReadingMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
