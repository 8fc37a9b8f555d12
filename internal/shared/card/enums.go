//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package card

// ActionKind identifies what a card button asks the bot to do
// ENUM(show_main_menu,show_status,view_config,show_keywords_menu,add_keyword_prompt,remove_keyword,show_sources_menu,toggle_source,save_sources,show_time_menu,add_preset_time,remove_time,add_custom_time_prompt,toggle_enabled,pause,test_push,noop)
type ActionKind string
