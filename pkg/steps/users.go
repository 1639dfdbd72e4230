/*
Copyright 2025 Mirantis IT.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package steps

import (
	"time"

	"github.com/pkg/errors"

	whalecommon "github.com/Mirantis/whale/pkg/common"
	"github.com/Mirantis/whale/pkg/decapod"
)

type UserSteps struct {
	*BaseSteps
}

func (s *UserSteps) CreateUser(data decapod.UserData, check bool) (*decapod.User, error) {
	if data.Login == "" {
		data.Login = s.generateName("user")
	}
	if data.Email == "" {
		data.Email = data.Login + "@example.com"
	}
	if data.FullName == "" {
		data.FullName = data.Login
	}
	s.Log.Info().Msgf("creating user '%s'", data.Login)
	user, err := s.Client.CreateUser(s.Context, data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create user '%s'", data.Login)
	}
	if check {
		if err := s.CheckUserPresence(user, true, s.Timeouts.Action); err != nil {
			return user, err
		}
		if err := s.assertDataEqual("user data", data, user.Data); err != nil {
			return user, err
		}
	}
	return user, nil
}

// UpdateUser applies mutate to fetched user data and stores the result.
func (s *UserSteps) UpdateUser(ref decapod.ResourceRef, mutate func(*decapod.UserData), check bool) (*decapod.User, error) {
	user, err := s.GetUser(ref, false)
	if err != nil {
		return nil, err
	}
	expected := user.Data
	mutate(&expected)
	whalecommon.ShowObjectDiff(s.Log, user.Data, expected)
	user.Data = expected
	updated, err := s.Client.UpdateUser(s.Context, user)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update user '%s'", user.ID)
	}
	if check {
		if err := s.assertDataEqual("user data", expected, updated.Data); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

func (s *UserSteps) DeleteUser(ref decapod.ResourceRef, check bool) error {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return err
	}
	s.Log.Info().Msgf("deleting user '%s'", id)
	if _, err := s.Client.DeleteUser(s.Context, id); err != nil {
		return errors.Wrapf(err, "failed to delete user '%s'", id)
	}
	if check {
		return s.CheckUserPresence(decapod.ID(id), false, s.Timeouts.Action)
	}
	return nil
}

func (s *UserSteps) GetUser(ref decapod.ResourceRef, check bool) (*decapod.User, error) {
	id, err := decapod.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	user, err := s.Client.GetUser(s.Context, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user '%s'", id)
	}
	if check {
		if err := assertIDEqual("user", id, user.ID); err != nil {
			return user, err
		}
	}
	return user, nil
}

func (s *UserSteps) GetUsers(check bool) ([]decapod.User, error) {
	users, err := s.Client.GetUsers(s.Context)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	if check {
		if err := assertNotEmpty("users", users); err != nil {
			return users, err
		}
	}
	return users, nil
}

func (s *UserSteps) GetUserByLogin(login string, check bool) (*decapod.User, error) {
	user, err := GetResourceByField(s.Context, s.Client.GetUsers, login, func(d decapod.UserData) string { return d.Login }, check)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find user with login '%s'", login)
	}
	return user, nil
}

func (s *UserSteps) CheckUserPresence(ref decapod.ResourceRef, mustPresent bool, timeout time.Duration) error {
	return CheckResourcePresence(s.Context, ref, s.Client.GetUser, mustPresent, timeout, s.waitOptions()...)
}
