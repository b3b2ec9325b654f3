package source

import (
	"fmt"
	"strings"
	"testing"

	"salonscout/internal/model"
)

const socialPage = `
<html><body>
<div role="article">
  <span>晶漾美甲工作室
光療凝膠 手足保養 預約請私訊
地址：高雄市左營區自由三路22號
電話 07-5851234</span>
</div>
<div role="article">
  <span>今天天氣真好，來分享一篇與店家無關的貼文。</span>
</div>
<div role="article">
  <span>Bella Lash 美睫沙龍
高雄市苓雅區光華一路55號</span>
</div>
</body></html>`

func TestParseSocialArticles(t *testing.T) {
	ex := newExtractor("高雄")
	records := parseSocialArticles(socialPage, ex)

	if len(records) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(records))
	}

	first := records[0]
	if first[model.KeyName] != "晶漾美甲工作室" {
		t.Errorf("name = %q", first[model.KeyName])
	}
	if first[model.KeyPhone] != "07-5851234" {
		t.Errorf("phone = %q", first[model.KeyPhone])
	}
	if first[model.KeyAddress] != "高雄市左營區自由三路22號" {
		t.Errorf("address = %q", first[model.KeyAddress])
	}
	// Page search results carry no canonical shop URL.
	if _, ok := first[model.KeyURL]; ok {
		t.Errorf("unexpected url %q", first[model.KeyURL])
	}

	second := records[1]
	if second[model.KeyName] != "Bella Lash 美睫沙龍" {
		t.Errorf("name = %q", second[model.KeyName])
	}
	if _, ok := second[model.KeyPhone]; ok {
		t.Errorf("unexpected phone %q", second[model.KeyPhone])
	}
}

func TestParseSocialArticles_CapsArticles(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < maxSocialPosts+5; i++ {
		fmt.Fprintf(&b, `<div role="article"><span>美甲工作室 %02d</span></div>`, i)
	}
	b.WriteString("</body></html>")

	records := parseSocialArticles(b.String(), newExtractor("高雄"))
	if len(records) != maxSocialPosts {
		t.Errorf("records = %d, want %d", len(records), maxSocialPosts)
	}
}

func TestSocialPageName_SkipsLongLines(t *testing.T) {
	long := strings.Repeat("美甲", 30)
	text := long + "\n艾蜜莉美睫\n更多貼文內容"
	if got := socialPageName(text); got != "艾蜜莉美睫" {
		t.Errorf("socialPageName = %q", got)
	}
	if got := socialPageName("與主題無關的文字"); got != "" {
		t.Errorf("socialPageName on irrelevant text = %q", got)
	}
}
