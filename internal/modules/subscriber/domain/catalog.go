package domain

import (
	"strings"

	"github.com/samber/lo"
)

// Source is an entry of the fixed source catalog
type Source struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

// Catalog lists every source a subscriber may pick, in display order
var Catalog = []Source{
	{ID: "zhihu", Name: "Zhihu", Alias: "知乎"},
	{ID: "weibo", Name: "Weibo", Alias: "微博"},
	{ID: "baidu", Name: "Baidu", Alias: "百度热搜"},
	{ID: "douyin", Name: "Douyin", Alias: "抖音"},
	{ID: "toutiao", Name: "Toutiao", Alias: "今日头条"},
	{ID: "bilibili-hot-search", Name: "Bilibili", Alias: "B站热搜"},
	{ID: "tieba", Name: "Tieba", Alias: "贴吧"},
	{ID: "thepaper", Name: "The Paper", Alias: "澎湃新闻"},
	{ID: "wallstreetcn-hot", Name: "WallStreetCN", Alias: "华尔街见闻"},
	{ID: "cls-hot", Name: "CLS", Alias: "财联社热门"},
	{ID: "ifeng", Name: "iFeng", Alias: "凤凰网"},
}

// LookupSource finds a catalog entry by id, display name or alias
func LookupSource(name string) (Source, bool) {
	name = strings.TrimSpace(name)
	return lo.Find(Catalog, func(s Source) bool {
		return strings.EqualFold(s.ID, name) || strings.EqualFold(s.Name, name) || s.Alias == name
	})
}

// IsKnownSource reports whether id is a catalog id
func IsKnownSource(id string) bool {
	return lo.ContainsBy(Catalog, func(s Source) bool { return s.ID == id })
}

// SourceName returns the display name for id, or id itself when unknown
func SourceName(id string) string {
	if s, ok := lo.Find(Catalog, func(s Source) bool { return s.ID == id }); ok {
		return s.Name
	}
	return id
}

// ResolveSources maps user-supplied names to catalog ids in input order.
// Unknown names are returned separately.
func ResolveSources(names []string) (ids []string, unknown []string) {
	for _, name := range names {
		src, ok := LookupSource(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		ids = append(ids, src.ID)
	}
	return lo.Uniq(ids), unknown
}

// SortSources orders ids the way the catalog lists them
func SortSources(ids []string) []string {
	set := lo.SliceToMap(ids, func(id string) (string, struct{}) { return id, struct{}{} })
	return lo.FilterMap(Catalog, func(s Source, _ int) (string, bool) {
		_, ok := set[s.ID]
		return s.ID, ok
	})
}
