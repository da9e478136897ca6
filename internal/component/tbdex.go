package component

// TbdexIdentity names the tbDEX SDK component.
const TbdexIdentity = "tbdex"

const (
	tbdexNamespace       = "tbdex_uniffi"
	tbdexContractVersion = 26
)

// Tbdex returns the built-in definition of the tbDEX SDK library.
func Tbdex() Definition {
	fn := func(name string) string {
		return "uniffi_" + tbdexNamespace + "_fn_func_" + name
	}
	return Definition{
		Identity:        TbdexIdentity,
		LibName:         "tbdex",
		Namespace:       tbdexNamespace,
		ContractVersion: tbdexContractVersion,
		LogLevelEnv:     "TBDEX_SDK_LOG_LEVEL",
		Symbols: []string{
			"ffi_" + tbdexNamespace + "_rustbuffer_alloc",
			"ffi_" + tbdexNamespace + "_rustbuffer_free",
			fn("get_offerings"),
			fn("get_balances"),
			fn("create_exchange"),
			fn("get_exchange"),
			fn("get_exchange_ids"),
			fn("submit_order"),
			fn("submit_cancel"),
		},
	}
}
