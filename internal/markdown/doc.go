// Package markdown turns unit Markdown into the HTML stored next to each
// html component. Conversion is delegated to an interfaces.MarkdownConverter
// (goldmark in process, or an external tool such as pandoc); the Bridge then
// rewrites asset links and code blocks for the target platform.
package markdown
