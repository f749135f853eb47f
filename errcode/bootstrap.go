package errcode

// ModuleBootstrap module code of the bootstrap framework
const ModuleBootstrap = 10

// Bootstrap business codes
const (
	CodeCycleDetected = iota + 1
	CodeUnresolvedDependency
	CodeComponentInitialization
	CodeHookExecution
	CodeInvalidRegistration
	CodeDuplicateComponent
	CodeModuleNotFound
	CodeModuleLoad
)

var (
	// ErrCycleDetected the dependency graph contains a cycle
	ErrCycleDetected = Register(New(ModuleBootstrap, CodeCycleDetected,
		"bootstrap", "error.bootstrap.cycle_detected", "dependency cycle detected"))

	// ErrUnresolvedDependency a declared dependency did not initialize
	ErrUnresolvedDependency = Register(New(ModuleBootstrap, CodeUnresolvedDependency,
		"bootstrap", "error.bootstrap.unresolved_dependency", "unresolved dependency"))

	// ErrComponentInitialization a component factory failed
	ErrComponentInitialization = Register(New(ModuleBootstrap, CodeComponentInitialization,
		"bootstrap", "error.bootstrap.component_initialization", "component initialization failed"))

	// ErrHookExecution an initialization or shutdown hook failed
	ErrHookExecution = Register(New(ModuleBootstrap, CodeHookExecution,
		"bootstrap", "error.bootstrap.hook_execution", "hook execution failed"))

	// ErrInvalidRegistration empty name or nil factory
	ErrInvalidRegistration = Register(New(ModuleBootstrap, CodeInvalidRegistration,
		"bootstrap", "error.bootstrap.invalid_registration", "invalid component registration"))

	// ErrDuplicateComponent the name is already registered
	ErrDuplicateComponent = Register(New(ModuleBootstrap, CodeDuplicateComponent,
		"bootstrap", "error.bootstrap.duplicate_component", "component already registered"))

	// ErrModuleNotFound the module path is not in the catalog
	ErrModuleNotFound = Register(New(ModuleBootstrap, CodeModuleNotFound,
		"bootstrap", "error.bootstrap.module_not_found", "module not found"))

	// ErrModuleLoad the module loader failed
	ErrModuleLoad = Register(New(ModuleBootstrap, CodeModuleLoad,
		"bootstrap", "error.bootstrap.module_load", "module load failed"))
)
