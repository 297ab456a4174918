// Package domain holds the coordination entities and the template
// application engine: pure logic over injected stores, with no transport
// or persistence concerns.
package domain
