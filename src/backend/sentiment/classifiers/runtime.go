package classifiers

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"
)

// RuntimeLibraryEnv overrides every other shared library location
const RuntimeLibraryEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

var runtimeMu sync.Mutex

// runtimeLibraryCandidates lists where packaged builds put the ONNX Runtime library
func runtimeLibraryCandidates() []string {
	if runtime.GOOS == "darwin" {
		return []string{
			"./libonnxruntime.dylib",
			"./build/libonnxruntime.dylib",
			"./libonnxruntime.1.23.1.dylib",
			"./build/libonnxruntime.1.23.1.dylib",
			"/opt/homebrew/lib/libonnxruntime.dylib",
		}
	}
	return []string{
		"./libonnxruntime.so",
		"./build/libonnxruntime.so",
		"./libonnxruntime.so.1.23.1",
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/libonnxruntime.so",
	}
}

// resolveLibraryPath picks the ONNX Runtime shared library:
// env var, then the configured path, then the first candidate that exists.
// Returns "" when nothing was found so the loader searches the system path.
func resolveLibraryPath(configured string) string {
	if p := os.Getenv(RuntimeLibraryEnv); p != "" {
		return p
	}
	if configured != "" {
		return configured
	}
	for _, path := range runtimeLibraryCandidates() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// initRuntime initializes the ONNX Runtime environment once per process
func initRuntime(configuredLibrary string) error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	if onnxruntime.IsInitialized() {
		return nil
	}

	if libPath := resolveLibraryPath(configuredLibrary); libPath != "" {
		onnxruntime.SetSharedLibraryPath(libPath)
	}

	if err := onnxruntime.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime environment: %w", err)
	}
	return nil
}

// ShutdownRuntime destroys the ONNX Runtime environment. Call it once at
// process exit, after every classifier has been closed.
func ShutdownRuntime() error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	if !onnxruntime.IsInitialized() {
		return nil
	}
	if err := onnxruntime.DestroyEnvironment(); err != nil {
		return fmt.Errorf("failed to destroy environment: %w", err)
	}
	return nil
}
