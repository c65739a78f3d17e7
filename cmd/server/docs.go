package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Redis_Learning Photo Cache API
// @version         0.1.0
// @description     Cache-aside proxy for album photos backed by Redis, memcached or memory.
// @host            localhost:6000
// @BasePath        /
// @schemes         http
