package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recovery はハンドラ内のパニックから回復するGinミドルウェアを返す。
// パニックの内容をログに出力し、クライアントには500を返す。
// 通知ジョブ側のパニックはNotifierが堰き止めるため、ここで扱うのは
// リクエスト処理のみ。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "内部サーバーエラーが発生しました",
				})
			}
		}()
		c.Next()
	}
}
