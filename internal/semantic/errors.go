package semantic

// Diagnostic kind tags for the static pipeline's error taxonomy. Every
// semantic and DI diagnostic carries one of these plus a span; the lexer,
// parser, and module loader also use kind strings not listed here (for
// example ModuleError::MissingModule and ModuleError::PrivateDeclaration).
const (
	// Module graph
	KindImportCycle    = "ModuleError::ImportCycle"
	KindAppOutsideMain = "ModuleError::AppOutsideEntry"

	// Type registration and checking
	KindDuplicateDeclaration = "TypeError::DuplicateDeclaration"
	KindUnknownType          = "TypeError::UnknownType"
	KindInvalidGenericBound  = "TypeError::InvalidGenericBound"
	KindMismatch             = "TypeError::Mismatch"
	KindUndefinedName        = "TypeError::UndefinedName"
	KindNotCallable          = "TypeError::NotCallable"
	KindArityMismatch        = "TypeError::ArityMismatch"
	KindTraitNotSatisfied    = "TypeError::TraitNotSatisfied"
	KindGenericInference     = "TypeError::GenericInferenceFailed"
	KindNullableNotAllowed   = "TypeError::NullableNotAllowed"
	KindBoundNotSatisfied    = "TypeError::BoundNotSatisfied"

	// Mutability
	KindAssignToImmutable  = "MutabilityError::AssignToImmutable"
	KindReceiverNotMutable = "MutabilityError::ReceiverNotMutable"
	KindDeadMut            = "Warning::DeadMut"

	// Error handling
	KindUnhandled = "ErrorHandling::Unhandled"

	// Dependency injection
	KindMissingProvider     = "DIError::MissingProvider"
	KindDICycle             = "DIError::Cycle"
	KindUnregisteredAmbient = "DIError::UnregisteredAmbient"
	KindGenericAmbient      = "DIError::GenericAmbient"
	KindManualConstruction  = "DIError::ManualConstruction"

	// Match analysis
	KindNonExhaustive  = "MatchError::NonExhaustive"
	KindUnreachableArm = "MatchError::UnreachableArm"

	// Compiler bugs
	KindInternal = "InternalError"
)
