package main

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/errdispatch/dispatch"
	"github.com/kbukum/errdispatch/errors"
	"github.com/kbukum/errdispatch/errtype"
)

// Game error hierarchy. Lose has no handler of its own and resolves to
// GameException.
var (
	ErrGame = errtype.New("GameException")
	ErrWin  = errtype.New("Win", ErrGame)
	ErrLose = errtype.New("Lose", ErrGame)
)

func registerGameHandlers(reg *dispatch.Registry) {
	reg.Register(ErrGame, func(_ *http.Request, res *dispatch.Response, _ error) error {
		res.SetStatus(http.StatusInternalServerError)
		res.SetText("Game over")
		return nil
	})
	reg.Register(ErrWin, func(_ *http.Request, res *dispatch.Response, _ error) error {
		res.SetStatus(http.StatusOK)
		res.SetText("You win!")
		return nil
	})
}

func registerGameRoutes(r gin.IRouter) {
	play := r.Group("/play")
	play.GET("/win", func(c *gin.Context) {
		_ = c.Error(ErrWin.New("jackpot"))
	})
	play.GET("/lose", func(c *gin.Context) {
		_ = c.Error(ErrLose.New("out of lives"))
	})
	play.GET("/crash", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("dealing cards: %w", errShuffle))
	})
	play.GET("/missing", func(c *gin.Context) {
		_ = c.Error(errors.NotFound("not found"))
	})
}

var errShuffle = stderrors.New("deck is empty")
