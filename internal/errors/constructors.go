package errors

// Convenience constructors for common error patterns

// Config errors

func ConfigNotFound(path string) *BuildPrepError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *BuildPrepError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Stub generation errors

func ProtocUnavailable(binary string, cause error) *BuildPrepError {
	return Wrap(cause, CategoryProtoc, SeverityFatal, "protocol compiler not found").
		WithContext("binary", binary)
}

func ProtocFailed(file string, cause error) *BuildPrepError {
	return Wrap(cause, CategoryProtoc, SeverityFatal, "protocol stub generation failed").
		WithContext("file", file)
}

func DefinitionMissing(path string) *BuildPrepError {
	return New(CategoryProtoc, SeverityFatal, "definition file does not exist").
		WithContext("path", path)
}

func IncludeMissing(path string) *BuildPrepError {
	return New(CategoryProtoc, SeverityFatal, "include path does not exist").
		WithContext("path", path)
}

// Manifest errors

func ManifestFieldMissing(field, path string) *BuildPrepError {
	return New(CategoryManifest, SeverityFatal, "required manifest field not found").
		WithContext("field", field).
		WithContext("path", path)
}

func ManifestUnreadable(path string, cause error) *BuildPrepError {
	return Wrap(cause, CategoryManifest, SeverityFatal, "manifest not readable").
		WithContext("path", path)
}

// Publish errors

func PublishWriteError(path string, cause error) *BuildPrepError {
	return Wrap(cause, CategoryPublish, SeverityFatal, "writing published constants failed").
		WithContext("path", path)
}

// Filesystem errors

func StagingError(operation string, cause error) *BuildPrepError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "staging operation failed").
		WithContext("operation", operation)
}

// Internal errors

func InternalError(message string, cause error) *BuildPrepError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
