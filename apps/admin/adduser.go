package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	lookup := uname
	if lookup == "" {
		lookup = email
	}
	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, lookup)
	if err != nil {
		if !core.IsNotFound(err) {
			return errors.Wrap(err, "finding user")
		}
		var roles []string
		if isAdmin {
			roles = user.AllRoles
		}
		_, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:     uname,
			Username: uname,
			Email:    email,
			Password: pwd,
			Roles:    roles,
		})
		return errors.Wrap(err, "creating user")
	}

	active := true
	uu := user.UpdateUser{Name: usr.Name, Username: usr.Username, Email: usr.Email, IsActive: &active}
	if email != "" {
		uu.Email = email
	}
	if isAdmin {
		uu.Roles = user.AllRoles
	}
	if usr, err = cli.usrSvc.Update(ctx, usr, uu); err != nil {
		return errors.Wrap(err, "updating user")
	}
	_, err = cli.usrSvc.SetPassword(ctx, usr, pwd)
	return errors.Wrap(err, "setting password")
}
