// Package preview renders a decomposed document as a standalone HTML page.
//
// The page mirrors what the DOCX builder produces: cover block, table of
// contents, revision history and the numbered body. It exists for reviewing
// content in a browser and is not paginated. Stages:
//   - Compose: rebuild Markdown from the regions, numbering headings and
//     swapping rendered diagrams for images
//   - Convert: Markdown to HTML via goldmark with chroma highlighting
//   - Inject: stylesheet and cover block
//   - Rewrite: relative image paths become file:// URLs
package preview
