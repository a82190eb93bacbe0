// Package config resolves the session settings the commands share. All of it
// comes from viper, so values can arrive via config file, environment
// variable or flag without the commands caring which.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/apperr"
)

// Session is the explicit environment an analysis run executes in. Commands
// receive one of these instead of reading ambient global state.
type Session struct {
	// Region and Bucket scope where datasets and job artifacts live.
	Region string
	Bucket string

	// RoleARN is the execution role the managed service assumes for the job.
	RoleARN string

	// BaseURL is the analysis service API root.
	BaseURL string

	// EndpointURL is the hosted inference endpoint used for scoring.
	EndpointURL string

	// Token authenticates API calls when the deployment requires it.
	Token string

	// Timeout is the per-request HTTP deadline.
	Timeout time.Duration
}

// FromViper assembles a Session from the resolved configuration. Keys live
// under the "session" prefix (e.g. session.base-url, or CLARIFY_SESSION_BASE_URL
// via the environment).
func FromViper() Session {
	timeoutSec := viper.GetInt("session.timeout")
	if timeoutSec <= 0 {
		timeoutSec = 30
	}

	return Session{
		Region:      viper.GetString("session.region"),
		Bucket:      viper.GetString("session.bucket"),
		RoleARN:     viper.GetString("session.role-arn"),
		BaseURL:     viper.GetString("session.base-url"),
		EndpointURL: viper.GetString("session.endpoint-url"),
		Token:       viper.GetString("session.token"),
		Timeout:     time.Duration(timeoutSec) * time.Second,
	}
}

// RequireBaseURL returns a user error when the session has no API root
// configured. Online commands call this before building a client.
func (s Session) RequireBaseURL() error {
	if s.BaseURL == "" {
		return apperr.User("no analysis service URL configured (set --base-url, session.base-url or CLARIFY_SESSION_BASE_URL)")
	}
	return nil
}
