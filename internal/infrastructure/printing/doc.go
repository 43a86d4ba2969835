// Package printing renders order documents. Templates are html/template; PDF
// output goes through headless Chrome (chromedp), and callers fall back to the
// HTML when no browser is available.
package printing
