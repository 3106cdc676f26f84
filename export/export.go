// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-draw/models"
)

// BOM makes spreadsheet apps open the file as UTF-8
const BOM = "\uFEFF"

// MemberSeparator joins group members inside one cell
const MemberSeparator = "、"

const (
	historyHeader = "序号,中奖姓名"
	groupsHeader  = "小组名称,小组成员"
)

// WriteHistory writes the draw history, most recent first. Each row is
// numbered so that the most recent draw has the highest number.
func WriteHistory(w io.Writer, history []string) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(BOM + historyHeader + "\n")
	for i, name := range history {
		bw.WriteString(strconv.Itoa(len(history)-i) + "," + field(name) + "\n")
	}
	return bw.Flush()
}

// WriteGroups writes one quoted row per group
func WriteGroups(w io.Writer, groups []models.GroupResult) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(BOM + groupsHeader + "\n")
	for _, g := range groups {
		bw.WriteString(quote(g.GroupName) + "," + quote(strings.Join(g.Members, MemberSeparator)) + "\n")
	}
	return bw.Flush()
}

// field quotes a cell only when it would otherwise break the row
func field(s string) string {
	if strings.ContainsAny(s, "\",\r\n") {
		return quote(s)
	}
	return s
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// HistoryFilename is the download name for a history export
func HistoryFilename(t time.Time) string {
	return "抽签历史_" + dateStamp(t) + ".csv"
}

// GroupsFilename is the download name for a grouping export
func GroupsFilename(t time.Time) string {
	return "分组结果_" + dateStamp(t) + ".csv"
}

func dateStamp(t time.Time) string {
	return t.Format("2006-1-2")
}

// ContentDisposition builds an attachment header that carries a
// UTF-8 filename (RFC 5987) with an ASCII fallback
func ContentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="export.csv"; filename*=UTF-8''%s`, url.PathEscape(filename))
}
