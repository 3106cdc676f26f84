// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package roster turns pasted or uploaded text into an ordered list of names.

# Parsing

Each line yields at most one name:

	names := roster.Parse("1, 王伟\n2, 李芳")  // ["王伟", "李芳"]

Lines are split on commas, semicolons, tabs and whitespace. The first
token that is not all digits is the name, so sequence numbers and
numeric IDs copied from a spreadsheet are skipped. Lines with only
numbers are dropped silently.

# Header Keywords

Names that contain a header keyword (姓名, name, 序号, id, no, ...)
are treated as header cells and dropped. The keyword list is data:

	kw, err := roster.LoadKeywords("keywords.yaml")
	p := roster.NewParser(kw)

# Duplicates

Duplicates are kept by Parse. FindDuplicates reports them and
Deduplicate removes them, keeping first-occurrence order.
*/
package roster
