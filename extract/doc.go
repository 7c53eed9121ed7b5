// Package extract turns source files into the cleaned text of a legal document.
//
// A PageSource yields page texts in order; Extract strips page-number
// footers and concatenates the pages. PDF files are read with
// github.com/ledongthuc/pdf, plain-text exports use form feeds as page breaks.
package extract
