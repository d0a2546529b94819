package model

import (
	"testing"

	"github.com/mj1618/luckydog/internal/platform"
)

func TestParseHierarchy_StripsNoise(t *testing.T) {
	h, err := ParseHierarchy([]byte(chatDumpXML))
	if err != nil {
		t.Fatal(err)
	}
	root := h.Root()
	if root == nil {
		t.Fatal("expected root")
	}
	if root.Class != "android.widget.FrameLayout" {
		t.Errorf("root class: got %q", root.Class)
	}
	if root.Parent() != nil {
		t.Error("root should have no parent")
	}
}

func TestParseHierarchy_Invalid(t *testing.T) {
	if _, err := ParseHierarchy([]byte("ERROR: null root node returned by UiTestAutomationBridge.")); err == nil {
		t.Error("expected error for non-XML output")
	}
}

func TestParseHierarchy_Empty(t *testing.T) {
	h, err := ParseHierarchy([]byte(`<?xml version='1.0' ?><hierarchy rotation="0"></hierarchy>`))
	if err != nil {
		t.Fatal(err)
	}
	if h.Root() != nil {
		t.Error("empty dump should have nil root")
	}
}

func TestParseHierarchy_MultipleWindowsWrapped(t *testing.T) {
	h := mustParse(`<hierarchy rotation="0">
  <node class="android.widget.FrameLayout" clickable="false" bounds="[0,0][10,10]" />
  <node class="android.widget.FrameLayout" clickable="true" bounds="[0,0][10,10]" />
</hierarchy>`)
	root := h.Root()
	if root == nil || root.ChildCount() != 2 {
		t.Fatalf("expected synthetic root with 2 children, got %+v", root)
	}
	if root.Clickable() {
		t.Error("synthetic root must not be clickable")
	}
	if root.Child(1).Parent() != platform.Node(root) {
		t.Error("top-level windows should point at the synthetic root")
	}
}

func TestNode_ParentLinks(t *testing.T) {
	root := mustParse(chatDumpXML).Root()
	list := root.Nodes[0]
	bubble := list.Nodes[1]
	label := bubble.Nodes[0]

	if label.Parent() != platform.Node(bubble) {
		t.Error("label parent should be the bubble")
	}
	if bubble.Parent() != platform.Node(list) {
		t.Error("bubble parent should be the list")
	}
	if !bubble.Clickable() || label.Clickable() {
		t.Error("clickable attribute not decoded")
	}
}

func TestNode_ChildOutOfRange(t *testing.T) {
	root := mustParse(chatDumpXML).Root()
	if root.Child(-1) != nil || root.Child(5) != nil {
		t.Error("out-of-range child should be nil")
	}
}

func TestNode_FindByViewID(t *testing.T) {
	root := mustParse(chatDumpXML).Root()

	matches := root.FindByViewID("com.tencent.mm:id/tv")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].(*Node).Text != "红包" {
		t.Errorf("preorder violated: first match %q", matches[0].(*Node).Text)
	}

	label := matches[1].(*Node)
	if got := label.FindByViewID("com.tencent.mm:id/tv"); len(got) != 0 {
		t.Error("FindByViewID should not return the receiver")
	}

	if got := root.FindByViewID(""); got != nil {
		t.Error("empty id should match nothing")
	}
	if got := root.FindByViewID("com.tencent.mm:id/none"); len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}

func TestParseBounds(t *testing.T) {
	b, err := ParseBounds("[120,620][680,700]")
	if err != nil {
		t.Fatal(err)
	}
	if b != (Bounds{X1: 120, Y1: 620, X2: 680, Y2: 700}) {
		t.Errorf("got %+v", b)
	}
	x, y := b.Center()
	if x != 400 || y != 660 {
		t.Errorf("center: got (%d,%d), want (400,660)", x, y)
	}
	if b.Rect() != [4]int{120, 620, 560, 80} {
		t.Errorf("rect: got %v", b.Rect())
	}
}

func TestParseBounds_Invalid(t *testing.T) {
	for _, s := range []string{"", "[1,2]", "1,2,3,4", "[a,b][c,d]"} {
		if _, err := ParseBounds(s); err == nil {
			t.Errorf("ParseBounds(%q) should fail", s)
		}
	}
}

func TestBounds_Empty(t *testing.T) {
	if !(Bounds{X1: 5, Y1: 5, X2: 5, Y2: 10}).Empty() {
		t.Error("zero-width bounds should be empty")
	}
	if (Bounds{X1: 0, Y1: 0, X2: 1, Y2: 1}).Empty() {
		t.Error("1x1 bounds should not be empty")
	}
}

func TestNode_Label(t *testing.T) {
	if (&Node{Text: "a", ContentDesc: "b"}).Label() != "a" {
		t.Error("text should win")
	}
	if (&Node{ContentDesc: "b"}).Label() != "b" {
		t.Error("content-desc fallback")
	}
}
