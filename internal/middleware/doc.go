// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

/*
Package middleware provides HTTP middleware for the local status API.

PrometheusMetrics instruments every request with the zero2_api_requests_total
counter and the zero2_api_request_duration_seconds histogram, labelled by
method, chi route pattern and status code:

	r.Use(chiMiddleware(middleware.PrometheusMetrics))
*/
package middleware
