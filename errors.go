/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotMember    = errors.New("client is not a member of the room")
	ErrNotEbe       = errors.New("only the ebe can catch")
	ErrTooFar       = errors.New("caught player is out of reach")
)

// roomNotFoundText is the only error text clients ever see.
const roomNotFoundText = "Oda bulunamadı"

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(cfg *Config, title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon(cfg))
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><p>%s</p><p><a href=\"%s/\">Back to the lobby</a></p></body></html>", body, cfg.prefix))

	return htmlBody.String()
}
