package chunker

import "strings"

const (
	// DefaultSize is the target chunk size in characters.
	DefaultSize = 2000

	// DefaultOverlap is how many characters consecutive chunks share.
	DefaultOverlap = 150

	// DefaultMaxChunks caps chunks per article. Content past the cap is
	// dropped from indexing; accepted lossy behavior for very long articles.
	DefaultMaxChunks = 100
)

// boundaries are sentence- and paragraph-ending separators, checked in order.
var boundaries = []string{". ", ".\n", "? ", "?\n", "! ", "!\n", "\n\n"}

// Options controls chunk sizing. Sizes are in characters (runes), so
// multi-byte scripts chunk the same as ASCII.
type Options struct {
	Size      int
	Overlap   int
	MaxChunks int // 0 means unlimited
}

// DefaultOptions returns the standard chunking parameters.
func DefaultOptions() Options {
	return Options{
		Size:      DefaultSize,
		Overlap:   DefaultOverlap,
		MaxChunks: DefaultMaxChunks,
	}
}

// Split divides text into trimmed, non-empty chunks. Text no longer than
// Options.Size is returned as a single chunk.
func Split(text string, opts Options) []string {
	if opts.Size <= 0 {
		opts = DefaultOptions()
	}
	if opts.Overlap < 0 || opts.Overlap >= opts.Size {
		opts.Overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= opts.Size {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	chunks := make([]string, 0, len(runes)/(opts.Size-opts.Overlap)+1)
	start := 0
	for start < len(runes) {
		end := start + opts.Size

		// Prefer a sentence or paragraph boundary past the halfway point
		// over a hard cut mid-sentence.
		if end < len(runes) {
			if cut := boundaryCut(runes[start:end], opts.Size/2); cut > 0 {
				end = start + cut
			}
		}

		sliceEnd := end
		if sliceEnd > len(runes) {
			sliceEnd = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:sliceEnd])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if sliceEnd >= len(runes) {
			break
		}

		// A boundary cut close to the halfway point can land inside the
		// overlap window; step without overlap then so start always advances.
		if next := end - opts.Overlap; next > start {
			start = next
		} else {
			start = end
		}
		if opts.MaxChunks > 0 && len(chunks) >= opts.MaxChunks {
			break
		}
	}

	return chunks
}

// boundaryCut returns the rune offset just past the last boundary separator
// in window that lies beyond min, or 0 when no such boundary exists.
func boundaryCut(window []rune, min int) int {
	for _, sep := range boundaries {
		if i := lastIndexRunes(window, []rune(sep)); i > min {
			return i + len([]rune(sep))
		}
	}
	return 0
}

// lastIndexRunes is strings.LastIndex over rune slices.
func lastIndexRunes(s, sep []rune) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		match := true
		for j := range sep {
			if s[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
