// Package snapshot provides an offline quiz.Page over static HTML.
//
// A snapshot page never touches the network. Selectors are evaluated against
// parsed HTML (CSS through goquery, XPath through htmlquery), and every click
// or fill mutates the tree and is appended to a journal, so a run against a
// saved page can be inspected afterwards.
//
// Embedded documents are taken from <iframe srcdoc="..."> elements of the
// root HTML, or added explicitly with WithFrame.
package snapshot
