/*
Package lipbalm renders text marked up with XML-like style tags.

Tags name styles in a StyleMap:

	styles := lipbalm.StyleMap{"Sample": lipgloss.NewStyle().Bold(true)}
	out, err := lipbalm.ExpandTags("<Sample>EA0000</Sample>", styles)

Render runs a text/template first and then expands the tags; StripTags
drops all tags for plain output.

Styles are applied only when the renderer set with SetDefaultRenderer has
a color profile. Content inside <no-format> is shown only when it has none:

	<Success>stored</Success><no-format> (ok)</no-format>

Text that does not parse as XML is passed through untouched, so template
data should be escaped with the esc helper.
*/
package lipbalm
