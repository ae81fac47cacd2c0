package markdown

var pipeline = Stages()

// Render converts text to HTML. It never fails; unrecognized syntax is kept
// as literal text and empty input yields an empty string.
func Render(text string) string {
	if text == "" {
		return ""
	}
	for _, st := range pipeline {
		text = st.Apply(text)
	}
	return text
}
