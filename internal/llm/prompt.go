package llm

// Preamble is the fixed instruction prefixed to the extracted label text.
const Preamble = "Act as an agriculture expert. Provide all details about the product " +
	"including its uses, chemical composition, and benefits. " +
	"Here is the product information: "

// maxExtractedLen caps how much OCR text rides along in the prompt; label
// text past this is noise, not signal.
const maxExtractedLen = 3000

// BuildPrompt concatenates the preamble with the extracted text.
func BuildPrompt(extracted string) string {
	if len(extracted) > maxExtractedLen {
		extracted = extracted[:maxExtractedLen]
	}
	return Preamble + extracted
}
