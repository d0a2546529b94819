package adb

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// fakeRunner answers commands by the last argument (the shell command, or
// the adb subcommand). Responses are consumed in order when more than one
// is queued for a command; the last one repeats.
type fakeRunner struct {
	mu        sync.Mutex
	responses map[string][]response
	calls     [][]string
}

type response struct {
	out string
	err error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: map[string][]response{}}
}

func (f *fakeRunner) on(cmd, out string, err error) *fakeRunner {
	f.responses[cmd] = append(f.responses[cmd], response{out, err})
	return f
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, args)
	key := args[len(args)-1]
	queue := f.responses[key]
	if len(queue) == 0 {
		return "", errors.New("unexpected command: " + strings.Join(args, " "))
	}
	r := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}
	return r.out, r.err
}

// commands returns the shell commands issued, without the serial prefix.
func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		out = append(out, c[len(c)-1])
	}
	return out
}

func testClient(r Runner) *Client {
	c := NewClient(r, "emulator-5554")
	c.log = zerolog.Nop()
	return c
}

func testHost(r Runner) *Host {
	h := NewHost(testClient(r))
	h.sleep = func(time.Duration) {}
	return h
}

var dumpCmd = "uiautomator dump " + dumpFile + " && cat " + dumpFile

const popupDump = `UI hierchary dumped to: /data/local/tmp/luckydog.xml
<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <node index="0" text="" resource-id="" class="android.widget.FrameLayout" package="com.tencent.mm" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[0,0][1080,2340]">
    <node index="0" text="Alice's red packet" resource-id="com.tencent.mm:id/sender" class="android.widget.TextView" package="com.tencent.mm" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[200,800][880,900]" />
    <node index="1" text="" resource-id="com.tencent.mm:id/open" class="android.widget.Button" package="com.tencent.mm" content-desc="Open" clickable="true" enabled="true" focused="false" selected="false" bounds="[440,1300][640,1500]" />
  </node>
</hierarchy>`

const shadeDump = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <node index="0" text="" resource-id="" class="android.widget.FrameLayout" package="com.android.systemui" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[0,0][1080,2340]">
    <node index="0" text="" resource-id="" class="android.widget.FrameLayout" package="com.android.systemui" content-desc="" clickable="true" enabled="true" focused="false" selected="false" bounds="[0,300][1080,500]">
      <node index="0" text="Alice" resource-id="android:id/title" class="android.widget.TextView" package="com.android.systemui" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[40,320][600,380]" />
      <node index="1" text="[微信红包]恭喜发财" resource-id="android:id/text" class="android.widget.TextView" package="com.android.systemui" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[40,390][900,450]" />
    </node>
  </node>
</hierarchy>`
