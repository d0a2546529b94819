package bridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/luckydog/internal/platform"
	"github.com/tidwall/gjson"
)

// DecodeEvent reads an injected event. Field names are accepted in the
// forms other tools emit them:
//
//	{"package": "com.tencent.mm", "type": "state", "class": "...",
//	 "notification": {"ticker": "...", "open": {"key": "...", "text": "...", "detail": "..."}}}
//
// "className" is accepted for "class", and a top-level "ticker" for
// "notification.ticker".
func DecodeEvent(payload []byte) (platform.ScreenEvent, error) {
	if !gjson.ValidBytes(payload) {
		return platform.ScreenEvent{}, errors.New("event payload is not valid JSON")
	}
	doc := gjson.ParseBytes(payload)

	ev := platform.ScreenEvent{
		Package:   doc.Get("package").String(),
		ClassName: first(doc, "class", "className").String(),
		Time:      time.Now(),
	}
	if ev.Package == "" {
		return ev, errors.New("event payload has no package")
	}
	typ, err := platform.ParseEventType(doc.Get("type").String())
	if err != nil {
		return ev, fmt.Errorf("event payload: %w", err)
	}
	ev.Type = typ
	if ts := doc.Get("time"); ts.Exists() {
		if t, err := time.Parse(time.RFC3339Nano, ts.String()); err == nil {
			ev.Time = t
		}
	}

	ticker := first(doc, "notification.ticker", "ticker")
	if ticker.Exists() {
		n := &platform.Notification{Ticker: ticker.String()}
		if open := doc.Get("notification.open"); open.IsObject() {
			n.Open = &platform.PendingAction{
				Key:     open.Get("key").String(),
				Package: open.Get("package").String(),
				Text:    open.Get("text").String(),
				Detail:  open.Get("detail").String(),
			}
		}
		ev.Notification = n
	}
	return ev, nil
}

func first(doc gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := doc.Get(p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}
