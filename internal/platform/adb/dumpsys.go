package adb

import (
	"regexp"
	"strings"
)

var resumedPattern = regexp.MustCompile(`(?:mResumedActivity|ResumedActivity|topResumedActivity)[:=]\s*ActivityRecord\{\S+ \S+ ([\w.]+)/([\w.$]+)`)

// parseResumedActivity extracts the package and fully qualified class of
// the foreground activity from `dumpsys activity activities`.
func parseResumedActivity(out string) (pkg, class string) {
	m := resumedPattern.FindStringSubmatch(out)
	if m == nil {
		return "", ""
	}
	pkg, class = m[1], m[2]
	if strings.HasPrefix(class, ".") {
		class = pkg + class
	}
	return pkg, class
}

// notificationRecord is one posted notification from
// `dumpsys notification --noredact`.
type notificationRecord struct {
	Key     string
	Package string
	Ticker  string
	Title   string
	Text    string
}

var (
	recordPkgPattern = regexp.MustCompile(`\bpkg=(\S+)`)
	recordKeyPattern = regexp.MustCompile(`\bkey=([^\s:]+)`)
	extraPattern     = regexp.MustCompile(`^(android\.title|android\.text)=\S+ \((.*)\)$`)
)

// parseNotifications returns the records of pkg in dump order. A record
// listed in several sections of the dump is returned once. The ticker
// falls back to "title: text" when the app posted no ticker.
func parseNotifications(out, pkg string) []notificationRecord {
	var records []notificationRecord
	seen := map[string]bool{}
	var cur *notificationRecord

	flush := func() {
		if cur == nil {
			return
		}
		if cur.Ticker == "" && cur.Title != "" {
			cur.Ticker = cur.Title + ": " + cur.Text
		}
		if cur.Key != "" && !seen[cur.Key] && (pkg == "" || cur.Package == pkg) {
			seen[cur.Key] = true
			records = append(records, *cur)
		}
		cur = nil
	}

	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "NotificationRecord(") {
			flush()
			cur = &notificationRecord{}
			if m := recordPkgPattern.FindStringSubmatch(line); m != nil {
				cur.Package = m[1]
			}
			if m := recordKeyPattern.FindStringSubmatch(line); m != nil {
				cur.Key = m[1]
			}
			continue
		}
		if cur == nil {
			continue
		}
		switch {
		case strings.HasPrefix(line, "tickerText="):
			v := strings.TrimPrefix(line, "tickerText=")
			if v != "null" {
				cur.Ticker = v
			}
		default:
			if m := extraPattern.FindStringSubmatch(line); m != nil {
				if m[1] == "android.title" {
					cur.Title = m[2]
				} else {
					cur.Text = m[2]
				}
			}
		}
	}
	flush()
	return records
}
