package component

// ConfigLoader configuration reader published as the "config" component
//
// Components read their own section through it instead of depending on an
// application-wide config struct.
type ConfigLoader interface {
	// Get raw value
	Get(key string) any

	// UnmarshalKey decodes the section at key into v
	//
	// Example:
	//   var redisConfigs map[string]redis.Config
	//   if err := loader.UnmarshalKey("redis", &redisConfigs); err != nil {
	//       return err
	//   }
	UnmarshalKey(key string, v any) error

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	IsSet(key string) bool
}
