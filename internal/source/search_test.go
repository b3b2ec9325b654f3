package source

import (
	"testing"

	"salonscout/internal/model"
)

const searchPage = `
<html><body>
<div class="g">
  <a href="https://www.bellanails.tw/"><h3>Bella 美甲工作室</h3></a>
  <span>高雄市鳳山區中山路100號 專業凝膠美甲 電話 07-7771234 歡迎預約</span>
</div>
<div class="g">
  <a href="https://example.com/pizza"><h3>Tony's Pizza House</h3></a>
  <span>best pizza in town</span>
</div>
<div class="g">
  <a href="/relative/link"><h3>夢幻美睫沙龍</h3></a>
  <span>睫毛嫁接 0912345678</span>
</div>
<div class="g">
  <h3>美甲</h3>
  <span>too short a title</span>
</div>
</body></html>`

func TestParseSearchResults(t *testing.T) {
	ex := newExtractor("高雄")
	records := parseSearchResults(searchPage, ex)

	if len(records) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(records))
	}

	first := records[0]
	if first[model.KeyName] != "Bella 美甲工作室" {
		t.Errorf("name = %q", first[model.KeyName])
	}
	if first[model.KeyAddress] != "高雄市鳳山區中山路100號 專業凝膠美甲 電話 07-7771234 歡迎預約" {
		t.Errorf("address = %q", first[model.KeyAddress])
	}
	if first[model.KeyPhone] != "07-7771234" {
		t.Errorf("phone = %q", first[model.KeyPhone])
	}
	if first[model.KeyURL] != "https://www.bellanails.tw/" {
		t.Errorf("url = %q", first[model.KeyURL])
	}

	second := records[1]
	if second[model.KeyName] != "夢幻美睫沙龍" {
		t.Errorf("name = %q", second[model.KeyName])
	}
	if second[model.KeyPhone] != "0912345678" {
		t.Errorf("phone = %q", second[model.KeyPhone])
	}
	// Relative links are not source URLs.
	if second[model.KeyURL] != "" {
		t.Errorf("relative href kept as url: %q", second[model.KeyURL])
	}
}

func TestParseSearchResults_EmptyPage(t *testing.T) {
	records := parseSearchResults("<html><body></body></html>", newExtractor("高雄"))
	if len(records) != 0 {
		t.Errorf("expected no candidates, got %d", len(records))
	}
}

func TestRelevantFilter(t *testing.T) {
	if relevant("Tony's Pizza House") {
		t.Error("irrelevant text passed the filter")
	}
	for _, text := range []string{"Bella 美甲", "HAPPY NAIL studio", "睫毛嫁接專門"} {
		if !relevant(text) {
			t.Errorf("relevant text %q rejected", text)
		}
	}
}
