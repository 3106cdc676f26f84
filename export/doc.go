// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package export renders draw history and grouping results as CSV.

Both files start with a UTF-8 byte-order mark.

History:

	序号,中奖姓名
	3,王伟
	2,李芳
	1,张敏

Groups, with members joined by "、" inside a quoted cell:

	小组名称,小组成员
	"星火队","王伟、李芳、张敏"
*/
package export
