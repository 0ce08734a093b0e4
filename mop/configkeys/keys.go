package configkeys

const (
	delimiter = "."

	ConfigPrefix = "mop"

	ConfigLogPrefix = ConfigPrefix + delimiter + "log"
	ConfigLogLevel  = ConfigLogPrefix + delimiter + "level"

	ConfigMethodMapPrefix      = ConfigPrefix + delimiter + "method_map"
	ConfigMethodMapEnabled     = ConfigMethodMapPrefix + delimiter + "enabled"
	ConfigMethodMapNumCounters = ConfigMethodMapPrefix + delimiter + "num_counters"
	ConfigMethodMapMaxCost     = ConfigMethodMapPrefix + delimiter + "max_cost"
	ConfigMethodMapBufferItems = ConfigMethodMapPrefix + delimiter + "buffer_items"

	ConfigLuaHostPrefix        = ConfigPrefix + delimiter + "lua_host"
	ConfigLuaHostCallStackSize = ConfigLuaHostPrefix + delimiter + "call_stack_size"
	ConfigLuaHostSkipOpenLibs  = ConfigLuaHostPrefix + delimiter + "skip_open_libs"
)
