package source

import (
	"fmt"
	"regexp"
	"strings"

	"salonscout/internal/model"
)

// Taiwanese landline or mobile number as it appears in free text.
var rePhone = regexp.MustCompile(`0\d{1,2}[-\s]?\d{6,8}|09\d{8}`)

// relevanceTokens decide whether a scraped block is about the business
// vertical at all; result pages mix in plenty of unrelated listings.
var relevanceTokens = []string{
	"美甲", "美睫", "美容", "指甲", "睫毛", "nail", "lash", "eyelash",
}

// extractor bundles the text-mining pieces the HTML adapters share.
type extractor struct {
	phone   *regexp.Regexp
	address *regexp.Regexp
}

// newExtractor builds an extractor for a region. The address pattern grabs
// a run of free text starting at the region token, the way the listings
// embed addresses in descriptions.
func newExtractor(regionToken string) extractor {
	ex := extractor{phone: rePhone}
	if regionToken != "" {
		ex.address = regexp.MustCompile(regexp.QuoteMeta(regionToken) + `[市]?[^,\n]{5,40}`)
	}
	return ex
}

// phoneFrom returns the first phone-shaped run in text, or "".
func (ex extractor) phoneFrom(text string) string {
	return ex.phone.FindString(text)
}

// addressFrom returns the first region-anchored address run in text, or "".
func (ex extractor) addressFrom(text string) string {
	if ex.address == nil {
		return ""
	}
	return ex.address.FindString(text)
}

// relevant reports whether text mentions the business vertical.
func relevant(text string) bool {
	lower := strings.ToLower(text)
	for _, token := range relevanceTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// rawRecord assembles an adapter payload, leaving absent fields out so the
// normalizer degrades them to the Unknown sentinel.
func rawRecord(name, address, phone, sourceURL string) model.RawRecord {
	raw := model.RawRecord{model.KeyName: name}
	if address != "" {
		raw[model.KeyAddress] = address
	}
	if phone != "" {
		raw[model.KeyPhone] = phone
	}
	if sourceURL != "" {
		raw[model.KeyURL] = sourceURL
	}
	return raw
}

// buildQuery joins keyword and anchor into the search phrase
// "keyword anchor 店家 電話 地址"; the extra terms pull phone and address
// into the result snippets.
func buildQuery(keyword, anchor string) string {
	return fmt.Sprintf("%s %s 店家 電話 地址", keyword, anchor)
}
