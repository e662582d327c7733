package ui

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const pageStyle = `
body { font-family: system-ui, sans-serif; margin: 0; background: #f6f8fa; color: #1f2328; }
main { max-width: 72rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; font-family: ui-monospace, monospace; font-size: 0.9rem; box-sizing: border-box; }
pre { background: #fff; border: 1px solid #d0d7de; padding: 1rem; overflow: auto; max-height: 32rem; }
.toolbar { display: flex; gap: 0.5rem; flex-wrap: wrap; margin: 0.75rem 0; align-items: center; }
.error { color: #cf222e; font-weight: 600; }
.muted { color: #656d76; }
`

func page(title string, body ...Node) Node {
	return Doctype(HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | colhash")),
			Link(Rel("icon"), Href("data:,")),
			StyleEl(Raw(pageStyle)),
		),
		Body(Main(Group(body))),
	))
}

func errorPage(title, message string) Node {
	return page(title,
		H1(Text(title)),
		P(Text(message)),
		P(A(Href("/ui/"), Text("Back to the editor"))),
	)
}
