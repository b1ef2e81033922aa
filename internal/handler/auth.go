package handler

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/reelguess/internal/middleware"
	"github.com/user/reelguess/internal/model"
	"github.com/user/reelguess/internal/utils"
)

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login 管理员登录
// 校验通过后同时下发 Session 和 JWT Cookie，审核台和脚本调用都能用
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindErrorMessage(err))
		return
	}

	if h.Config.AdminPassword == "" || !h.checkPassword(req.Password) {
		utils.Unauthorized(c, "密码错误")
		return
	}

	token, err := middleware.GenerateToken("admin", "admin", h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		utils.InternalServerError(c, "登录失败，请重试")
		return
	}
	c.SetCookie("token", token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)

	session := sessions.Default(c)
	session.Set("user", model.SessionUser{Name: "admin", Role: "admin"})
	session.Save()

	utils.SuccessWithMessage(c, "登录成功", gin.H{"token": token})
}

// Logout 登出，清掉 Session 和 Token Cookie
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)

	session := sessions.Default(c)
	session.Clear()
	session.Save()

	utils.SuccessWithMessage(c, "已退出", nil)
}

// checkPassword 配置的是 bcrypt 哈希就走 bcrypt，否则恒定时间比较明文
func (h *Handler) checkPassword(password string) bool {
	configured := h.Config.AdminPassword
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(password)) == 1
}
