package main

// @title DirectLine Bridge APIs
// @version 1.0
// @description Keeps Bot Framework credentials fresh and relays DirectLine conversations without exposing tokens.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:9089
// @BasePath /
// @schemes http
import (
	_ "directline-bridge/docs"
	protocol "directline-bridge/protocal"

	_ "github.com/arsmn/fiber-swagger/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	err := protocol.ServeHTTP()
	if err != nil {
		logrus.Fatalln(err)
	}
}
