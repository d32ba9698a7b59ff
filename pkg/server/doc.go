// Package server exposes district rankings and charts over HTTP.
//
// # Routes
//
//	GET /healthz                       build info
//	GET /districts                     the dataset and its columns
//	GET /indicators/{column}?borocd=   districts ranked by a column
//	GET /charts/{column}.{format}      a rendered ranking chart
//	GET /search?q=                     navigation options for a search
//
// Chart requests accept borocd, overlay, moe, unit, numeral, width, height,
// hover, title, page, scale and caption query parameters. Errors are JSON
// objects carrying the error code; the status is derived from the code by
// [StatusFor].
package server
