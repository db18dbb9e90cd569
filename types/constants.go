package types

// GraphQL-related constants used throughout the codebase.
// Centralizing these prevents typos and makes refactoring safer.
const (
	// GraphQLTag is the struct tag name used to name a member of a
	// named-field map explicitly.
	GraphQLTag = "graphql"

	// JSONTag is the fallback struct tag consulted when no graphql tag
	// is present.
	JSONTag = "json"

	// TypenameField is the GraphQL introspection field used for type
	// discrimination in unions and interfaces.
	TypenameField = "__typename"

	// FragmentOnPrefix is the full prefix for typed inline fragments
	// (e.g., "... on Droid").
	FragmentOnPrefix = "... on "

	// UploadScalar is the default name of the binary upload marker type.
	UploadScalar = "Upload"

	// VariablesRoot is the first segment of every multipart upload path.
	VariablesRoot = "variables"
)
