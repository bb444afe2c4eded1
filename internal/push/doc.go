// Package push はWeb Push（VAPID）による通知配信チャネルを提供する。
package push
