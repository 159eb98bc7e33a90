package config

import "os"

func IsDebug() bool {
	v := os.Getenv("TUSK_DEBUG")
	return v == "1" || v == "true"
}
