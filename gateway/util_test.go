package gateway

import (
	"github.com/trezcool/masomo-client/core/analytics"
	"github.com/trezcool/masomo-client/core/auth"
	"github.com/trezcool/masomo-client/core/purchase"
)

func authRequest() auth.RequestCode { return auth.RequestCode{Email: "a@b.com"} }

func purchaseRequest() purchase.Initiate { return purchase.Initiate{PlanID: 1} }

func analyticsFilter() analytics.ActivityFilter { return analytics.ActivityFilter{} }
