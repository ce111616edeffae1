// Package tabular turns CSV-like text into ordered rows of typed values.
//
// The parser is deliberately lenient. It is not an RFC 4180 reader:
//
//   - lines end at \r\n, \n\r, \n or \r
//   - a comma separates fields only when an even number of double quotes
//     follows it on the same line, so commas inside "..." stay literal
//   - doubled quotes, multi-line quoted fields and custom delimiters are
//     not supported
//   - malformed quoting never produces an error
//
// Every field is cleaned (surrounding quotes and all backslashes removed)
// and typed by [InferValue]: integer first, then float, then string.
//
// # Usage
//
//	rows := tabular.Parse("name,x\nfoo,1\n")
//	v, ok := rows[0].Get("x") // v.Kind() == tabular.KindInt
//
// [Parse] holds no state between calls and is safe for concurrent use on
// independent inputs.
package tabular
