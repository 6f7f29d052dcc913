// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	Remote    Remote    `yaml:"remote"`
	Account   Account   `yaml:"account"`
	Freshness Freshness `yaml:"freshness"`
	Store     Store     `yaml:"store"`
	Database  Database  `yaml:"database"`
	ValKey    ValKey    `yaml:"valkey"`
	Migrate   Migrate   `yaml:"migrate"`
	Watch     Watch     `yaml:"watch"`
}

// Remote points at the account service.
type Remote struct {
	BaseURL string        `yaml:"baseURL" default:"https://dev.refinemirror.com/api/v1/"`
	Timeout time.Duration `yaml:"timeout" default:"30s"`
	// SecretRef optionally enables mTLS towards the account service.
	SecretRef commoncfg.SecretRef `yaml:"secretRef"`
}

// Account holds the credentials login falls back to when no flags are given.
type Account struct {
	Email    string              `yaml:"email"`
	Password commoncfg.SourceRef `yaml:"password"`
}

type Freshness struct {
	SoftTTL time.Duration `yaml:"softTTL" default:"5m"`
	HardTTL time.Duration `yaml:"hardTTL" default:"60m"`
}

type StoreType string

const (
	StoreTypeMemory   StoreType = "memory"
	StoreTypeValKey   StoreType = "valkey"
	StoreTypePostgres StoreType = "postgres"
)

type Store struct {
	Type StoreType `yaml:"type" default:"memory"`
	// Namespace separates the sessions of several users sharing a backend.
	Namespace string `yaml:"namespace" default:"default"`
}

type Database struct {
	Name     string              `yaml:"name"`
	Port     string              `yaml:"port"`
	SSLMode  string              `yaml:"sslMode"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
}

type ValKey struct {
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
	Prefix   string              `yaml:"prefix" default:"profile-session"`

	SecretRef commoncfg.SecretRef `yaml:"secretRef"`
}

type Migrate struct {
	Source string `yaml:"source" default:"embedded"`
}

type Watch struct {
	Interval time.Duration `yaml:"interval" default:"1m"`
}
