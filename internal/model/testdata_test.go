package model

// chatDumpXML mimics a chat screen with two red packet bubbles, the first
// already opened (it carries the id/tt marker).
//
//	FrameLayout
//	└── ListView
//	    ├── LinearLayout (clickable)
//	    │   ├── TextView id/tv "红包"
//	    │   └── TextView id/tt "已领取"
//	    └── LinearLayout (clickable)
//	        └── TextView id/tv "恭喜发财"
const chatDumpXML = `adb: some noise
<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <node index="0" text="" resource-id="" class="android.widget.FrameLayout" package="com.tencent.mm" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[0,0][1080,2340]">
    <node index="0" text="" resource-id="com.tencent.mm:id/list" class="android.widget.ListView" package="com.tencent.mm" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[0,200][1080,2000]">
      <node index="0" text="" resource-id="" class="android.widget.LinearLayout" package="com.tencent.mm" content-desc="" clickable="true" enabled="true" focused="false" selected="false" bounds="[100,300][700,500]">
        <node index="0" text="红包" resource-id="com.tencent.mm:id/tv" class="android.widget.TextView" package="com.tencent.mm" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[120,320][680,400]" />
        <node index="1" text="已领取" resource-id="com.tencent.mm:id/tt" class="android.widget.TextView" package="com.tencent.mm" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[120,400][680,480]" />
      </node>
      <node index="1" text="" resource-id="" class="android.widget.LinearLayout" package="com.tencent.mm" content-desc="" clickable="true" enabled="true" focused="false" selected="false" bounds="[100,600][700,800]">
        <node index="0" text="恭喜发财" resource-id="com.tencent.mm:id/tv" class="android.widget.TextView" package="com.tencent.mm" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[120,620][680,700]" />
      </node>
    </node>
  </node>
</hierarchy>
UI hierchary dumped to: /sdcard/window_dump.xml`

// mustParse parses a dump or fails the test binary.
func mustParse(data string) *Hierarchy {
	h, err := ParseHierarchy([]byte(data))
	if err != nil {
		panic(err)
	}
	return h
}
