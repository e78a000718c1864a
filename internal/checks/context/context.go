package context

// Context is the rendered page handed to every analyzer.
type Context struct {
	URL         string
	Title       string
	HTML        string
	StatusCode  int
	Screenshots map[string]string
}

func New(url, title, html string) *Context {
	return &Context{
		URL:         url,
		Title:       title,
		HTML:        html,
		StatusCode:  200,
		Screenshots: map[string]string{},
	}
}
