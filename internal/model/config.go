package model

import "time"

// Config holds the full runtime configuration. Values are layered from
// defaults, the config file, SALONSCOUT_* environment variables and CLI
// flags, highest priority last.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Harvest     HarvestConfig     `yaml:"harvest" mapstructure:"harvest"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Places      PlacesConfig      `yaml:"places" mapstructure:"places"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
}

// HTTPConfig controls the page fetcher.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	// RespectRobots gates every page fetch on the host's robots.txt.
	RespectRobots bool `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// CacheConfig controls the fetched-page cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// DedupePolicy selects how the index decides two records are the same
// business. The original field data is inconsistent enough that this is an
// explicit choice, not an inference.
type DedupePolicy string

const (
	PolicyExactNameOnly    DedupePolicy = "exactNameOnly"
	PolicyNameAndURL       DedupePolicy = "nameAndUrl"
	PolicyPunctInsensitive DedupePolicy = "punctuationInsensitive"
)

// DedupeScope selects whether dedup state is shared across all anchors or
// partitioned per search anchor. Per-anchor scoping lets the same business
// appear once per anchor, which changes the output's duplicate rate.
type DedupeScope string

const (
	ScopeGlobal    DedupeScope = "global"
	ScopePerAnchor DedupeScope = "perAnchor"
)

// RegionFilter controls what happens to records whose address does not
// mention the target region.
type RegionFilter string

const (
	RegionFilterOff     RegionFilter = "off"
	RegionFilterRequire RegionFilter = "require"
)

// HarvestConfig controls the accumulation run itself.
type HarvestConfig struct {
	TargetCap    int          `yaml:"target_cap" mapstructure:"target_cap"`
	DedupePolicy DedupePolicy `yaml:"dedupe_policy" mapstructure:"dedupe_policy"`
	DedupeScope  DedupeScope  `yaml:"dedupe_scope" mapstructure:"dedupe_scope"`
	RegionFilter RegionFilter `yaml:"region_filter" mapstructure:"region_filter"`

	// RegionTokens mark an address as inside the target region.
	RegionTokens []string `yaml:"region_tokens" mapstructure:"region_tokens"`
	// PostalPattern is an optional regexp matched against addresses as a
	// second region signal (e.g. Kaohsiung postal codes 800-852).
	PostalPattern string `yaml:"postal_pattern" mapstructure:"postal_pattern"`

	Keywords []string `yaml:"keywords" mapstructure:"keywords"`
	Anchors  []string `yaml:"anchors" mapstructure:"anchors"`

	// RequestsPerSecond / Burst feed the per-domain limiter; MinDelay and
	// MaxDelay bound the extra jittered pause between requests.
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	MinDelay          time.Duration `yaml:"min_delay" mapstructure:"min_delay"`
	MaxDelay          time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
}

// ConcurrencyConfig controls optional per-anchor parallelism. The default
// of 1 preserves the strictly sequential behavior the upstream services
// tolerate best.
type ConcurrencyConfig struct {
	AnchorWorkers int `yaml:"anchor_workers" mapstructure:"anchor_workers"`
}

// OutputConfig controls export paths and verbosity.
type OutputConfig struct {
	XLSXPath string `yaml:"xlsx_path" mapstructure:"xlsx_path"`
	CSVPath  string `yaml:"csv_path" mapstructure:"csv_path"`
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
}

// PlacesConfig configures the Places API adapter.
type PlacesConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	APIKey   string `yaml:"-" mapstructure:"-"` // env / .env only, never persisted
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Radius   int    `yaml:"radius" mapstructure:"radius"`
	Language string `yaml:"language" mapstructure:"language"`
	// Locations maps an anchor to its "lat,lng" center for Nearby Search.
	// Anchors without coordinates fall back to text search only.
	Locations map[string]string `yaml:"locations" mapstructure:"locations"`
}

// StorageConfig configures the persistent harvest store.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// DefaultConfig returns the built-in defaults: a Kaohsiung nail/eyelash
// harvest capped at 2000 records, global nameAndUrl dedup, sequential run.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "salonscout/0.1 (business listings research)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".salonscout-cache",
			TTL:     6 * time.Hour,
		},
		Harvest: HarvestConfig{
			TargetCap:     2000,
			DedupePolicy:  PolicyNameAndURL,
			DedupeScope:   ScopeGlobal,
			RegionFilter:  RegionFilterOff,
			RegionTokens:  []string{"高雄", "高雄市"},
			PostalPattern: `\b(8[0-4]\d|85[0-2])\b`,
			Keywords: []string{
				"美甲", "美睫", "指甲彩繪", "睫毛嫁接",
				"美甲工作室", "美睫工作室", "nail", "eyelash",
			},
			Anchors: []string{
				"鳳山", "左營", "楠梓", "三民", "苓雅", "新興",
				"前金", "鼓山", "前鎮", "小港",
			},
			RequestsPerSecond: 0.5,
			Burst:             1,
			MinDelay:          2 * time.Second,
			MaxDelay:          4 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			AnchorWorkers: 1,
		},
		Output: OutputConfig{
			XLSXPath: "salons.xlsx",
			CSVPath:  "",
		},
		Places: PlacesConfig{
			Enabled:  false,
			BaseURL:  "https://maps.googleapis.com/maps/api/place",
			Radius:   3000,
			Language: "zh-TW",
		},
		Storage: StorageConfig{
			Enabled: false,
			Path:    ".salonscout/harvest.db",
		},
	}
}
