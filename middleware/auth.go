package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware 认证中间件。接受两种 Bearer 凭证：
//   - 登录签发的 JWT
//   - 配置的静态 API 令牌（供外部清理触发器等服务端调用方使用）
func AuthMiddleware(jwtSecret []byte, apiToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"reason":  "UNAUTHORIZED",
				"message": "未提供认证令牌",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"reason":  "UNAUTHORIZED",
				"message": "认证令牌格式错误",
			})
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 静态 API 令牌
		if apiToken != "" && subtle.ConstantTimeCompare([]byte(tokenString), []byte(apiToken)) == 1 {
			c.Set("auth_subject", "api-token")
			c.Next()
			return
		}

		// JWT
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return jwtSecret, nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"reason":  "UNAUTHORIZED",
				"message": "认证令牌无效或已过期",
			})
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if username, ok := claims["username"].(string); ok {
				c.Set("auth_subject", username)
			}
		}

		c.Next()
	}
}
