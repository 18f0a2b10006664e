// Package di wires the cache stack into a samber/do container
package di

import "github.com/samber/do/v2"

// Injector alias
type Injector = do.Injector

// RootScope alias
type RootScope = do.RootScope

// New creates a root injector
var New = do.New

// Generic helpers are called through the do package directly:
//
//	svc := do.MustInvoke[*cache.Service](app.Injector())
