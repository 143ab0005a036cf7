// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package service contains the business logic of the event series service.
package service

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// SkipRevisionValidation is a flag to skip the revision validation - only meant for local development.
	SkipRevisionValidation bool
}
