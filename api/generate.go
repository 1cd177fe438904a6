package api

//go:generate go tool oapi-codegen --generate types -o types.gen.go -package=api api.yaml
