// Package segment splits legal text into articles.
//
// An article starts at a header line such as "Artículo 183 bis.- ..." and
// runs until the next header. Labels are unique per document: when a label
// appears twice the later text replaces the earlier one.
package segment
