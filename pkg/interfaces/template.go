package interfaces

// TemplateRenderer fills a named template with the supplied variables.
// Implementations decide where templates come from; the compiler only knows
// template names.
type TemplateRenderer interface {
	RenderTemplate(name string, data any) (string, error)
}
