package corpus

import "strings"

// Split cuts text into fixed-size windows of chunkSize runes that advance by
// chunkSize-overlap. When overlap >= chunkSize the advance clamps to
// chunkSize so the walk always makes progress. Windows are trimmed and empty
// ones dropped; surviving chunks keep their original order. The result for a
// given input is always the same.
func Split(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}

	step := chunkSize - overlap
	if step < 1 {
		step = chunkSize
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
