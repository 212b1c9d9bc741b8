package topics

// Renderer formats raw topic content for display
type Renderer interface {
	// Render takes the content and the file extension it came from
	Render(content string, format string) string
}

// PlainRenderer returns content as is
type PlainRenderer struct{}

// Render returns the content unchanged
func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
