// Package config は環境変数からのサービス設定の読み込みを提供する。
package config
